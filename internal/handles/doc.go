// Package handles maps small integer handles to Go values.
//
// Go pointers may not be retained by foreign code, so state that has to
// travel through a foreign user-data slot (a progress handler, an open file
// behind a custom file system) is registered here and only its Handle crosses
// the boundary:
//
//	table := handles.NewTable[*state]()
//	h := table.Insert(st)
//	defer table.Remove(h)
//
//	// inside the callback
//	st, ok := table.Get(handles.Handle(userData))
//
// Handle 0 is reserved and always invalid, so a zeroed user-data slot never
// resolves to a value. Freed handles are reused.
//
// Values implementing Dropper are notified when they are removed or when the
// table is closed.
//
// Table is safe for concurrent use.
package handles
