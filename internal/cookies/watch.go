package cookies

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the jar whenever another process rewrites its file, the way a
// browser tab notices cookie changes made by its siblings. Each reload invokes
// onChange. Watch blocks until ctx is done.
//
// Only the file backend can be watched; the keyring backend has no change
// notification channel.
func (j *Jar) Watch(ctx context.Context, onChange func()) error {
	fs, ok := j.store.(*FileStore)
	if !ok {
		return fmt.Errorf("cookie jar watching requires the file-backed store")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: the jar file is replaced by rename, which drops
	// a watch on the file itself.
	if err := watcher.Add(fs.Dir); err != nil {
		return err
	}

	target := filepath.Base(fs.Path())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := j.Reload(); err != nil {
				// File may be mid-replace or deleted on logout; an empty
				// reload is handled by the next event or by Clear.
				continue
			}
			if onChange != nil {
				onChange()
			}
		case err, open := <-watcher.Errors:
			if !open {
				return nil
			}
			_ = err // transient watcher errors are not fatal
		}
	}
}
