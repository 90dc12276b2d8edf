package datekeeper

// FileEvents carries optional hooks observing the keeper's file
// lifecycle, for external auditing. Each hook fires exactly once per
// open or close, the Before hook first; the After open hook only fires
// when the open succeeded. Nil hooks are skipped. Hooks run under the
// keeper's lock and must not call back into it.
type FileEvents struct {
	BeforeOpen  func(path string)
	AfterOpen   func(path string, file File)
	BeforeClose func(path string, file File)
	AfterClose  func(path string)
}
