package datekeeper

import "sync"

// Keeping track of all live Keeper instances by their base path, so
// two Keepers never fight over the same file.
var registry *sync.Map = new(sync.Map)

// Look up the live Keeper of a given base path, if any.
func lookup(base string) (*Keeper, bool) {
	val, ok := registry.Load(base)
	if !ok {
		return nil, false
	}
	return val.(*Keeper), true
}

// Register the Keeper to the registry if its base path is not yet
// managed, else return the registered one.
func register(base string, keeper *Keeper) (k *Keeper, isNew bool) {
	val, loaded := registry.LoadOrStore(base, keeper)
	return val.(*Keeper), !loaded
}

// Deregister the Keeper of a given base path.
func deregister(base string) {
	registry.Delete(base)
}
