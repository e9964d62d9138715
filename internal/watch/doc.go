// Package watch reports changes to dashboard documents on disk.
//
// A Watcher watches the directories holding the documents rather than the
// files themselves, so editors that save by writing a new file and renaming
// it over the old one are handled. Bursts of events for one file are
// debounced into a single Event.
package watch
