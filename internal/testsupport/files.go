package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteText writes body to path, creating parent directories.
func WriteText(t testing.TB, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Dataset points at a T1/PET pair and the PET sidecar written for a test.
type Dataset struct {
	Root    string
	T1      string
	PET     string
	Sidecar string
}

// WriteDataset lays out a BIDS-style T1/PET pair under a temp directory.
// Empty subject or session labels leave the corresponding segments out.
func WriteDataset(t testing.TB, subject, t1Session, petSession string) Dataset {
	t.Helper()

	root := t.TempDir()
	ds := Dataset{Root: root}
	ds.T1 = filepath.Join(root, subject, t1Session, "anat", joinEntities(subject, t1Session, "T1w.nii.gz"))
	ds.PET = filepath.Join(root, subject, petSession, "pet", joinEntities(subject, petSession, "pet.nii.gz"))
	ds.Sidecar = filepath.Join(root, subject, petSession, "pet", joinEntities(subject, petSession, "pet.json"))

	WriteText(t, ds.T1, "original-t1")
	WriteText(t, ds.PET, "original-pet")
	WriteText(t, ds.Sidecar, `{"TracerName": "FDG"}`)
	return ds
}

// WriteLicense writes a placeholder FreeSurfer license and returns its path.
func WriteLicense(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "license.txt")
	WriteText(t, path, "user@example.org\n12345\n")
	return path
}

func joinEntities(subject, session, suffix string) string {
	name := ""
	for _, part := range []string{subject, session} {
		if part != "" {
			name += part + "_"
		}
	}
	return name + suffix
}
