// Package license resolves the FreeSurfer license named by the environment and
// installs it where the defacing container expects to mount it from.
package license

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"petdeface/internal/fileutil"
	"petdeface/internal/services"
)

const (
	// InstalledName is the file name the license is copied to.
	InstalledName = "license.txt"
	lockName      = ".petdeface-license.lock"
	lockRetry     = 100 * time.Millisecond
	lockTimeout   = 30 * time.Second
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Resolve returns the license path named by envName. An unset or blank
// variable is a configuration error; a path that does not exist is not found.
func Resolve(lookup LookupFunc, envName string) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(envName)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", services.Wrap(services.ErrConfiguration, "license", "resolve",
			fmt.Sprintf("environment variable %s must point at a FreeSurfer license file", envName), nil)
	}
	info, err := os.Stat(value)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrNotFound, "license", "resolve",
				fmt.Sprintf("license file %s (from %s) does not exist", value, envName), nil)
		}
		return "", services.Wrap(services.ErrConfiguration, "license", "resolve", "stat license file", err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrConfiguration, "license", "resolve",
			fmt.Sprintf("license path %s is a directory", value), nil)
	}
	return value, nil
}

// Install copies src into installDir as license.txt and returns the installed
// path. Concurrent runs sharing installDir are serialized by a file lock. The
// installed copy is left in place after the run.
func Install(src, installDir string) (string, error) {
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "license", "install", "create install directory", err)
	}

	lock := flock.New(filepath.Join(installDir, lockName))
	if err := acquire(lock); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "license", "install", "lock install directory", err)
	}
	defer func() { _ = lock.Unlock() }()

	dst := filepath.Join(installDir, InstalledName)
	if same, err := sameFile(src, dst); err == nil && same {
		return dst, nil
	}
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "license", "install", "copy license", err)
	}
	return dst, nil
}

// ResolveAndInstall runs Resolve followed by Install.
func ResolveAndInstall(lookup LookupFunc, envName, installDir string) (string, error) {
	src, err := Resolve(lookup, envName)
	if err != nil {
		return "", err
	}
	return Install(src, installDir)
}

func acquire(lock *flock.Flock) error {
	deadline := time.Now().Add(lockTimeout)
	for {
		ok, err := lock.TryLock()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for %s", lock.Path())
		}
		time.Sleep(lockRetry)
	}
}

func sameFile(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
