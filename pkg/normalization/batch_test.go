package normalization

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/unicode/norm"
)

// createFile creates an empty file at the specified path.
func createFile(t *testing.T, path string) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatal("unable to create file:", err)
	}
	file.Close()
}

func TestConvertTreeRecursive(t *testing.T) {
	// Create a nested structure with decomposed names.
	root := t.TempDir()
	subdirectory := filepath.Join(root, norm.NFD.String("서브폴더"))
	if err := os.Mkdir(subdirectory, 0700); err != nil {
		t.Fatal("unable to create subdirectory:", err)
	}
	createFile(t, filepath.Join(root, norm.NFD.String("파일1.txt")))
	createFile(t, filepath.Join(subdirectory, norm.NFD.String("파일2.txt")))
	createFile(t, filepath.Join(root, "plain.txt"))

	// Perform conversion.
	result, err := ConvertTree(root, true, FormComposed, nil)
	if err != nil {
		t.Fatal("unable to convert tree:", err)
	}
	if result.Converted != 3 {
		t.Error("unexpected conversion count:", result.Converted)
	}

	// Verify that every remaining entry name is composed.
	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !IsComposed(filepath.Base(path)) {
			t.Errorf("entry not composed after conversion: %s", path)
		}
		return nil
	}); err != nil {
		t.Fatal("unable to walk tree:", err)
	}
}

func TestConvertTreeNonRecursive(t *testing.T) {
	// Create a structure with a decomposed name below the top level.
	root := t.TempDir()
	subdirectory := filepath.Join(root, "sub")
	if err := os.Mkdir(subdirectory, 0700); err != nil {
		t.Fatal("unable to create subdirectory:", err)
	}
	nested := filepath.Join(subdirectory, norm.NFD.String("café.txt"))
	createFile(t, nested)

	// Perform a non-recursive conversion.
	if _, err := ConvertTree(root, false, FormComposed, nil); err != nil {
		t.Fatal("unable to convert tree:", err)
	}

	// Verify that the nested entry was left alone.
	if _, err := os.Lstat(nested); err != nil {
		t.Error("nested decomposed entry was modified")
	}
}

func TestConvertTreeCollision(t *testing.T) {
	// Create a decomposed entry alongside its composed twin.
	root := t.TempDir()
	decomposed := filepath.Join(root, norm.NFD.String("café.txt"))
	composed := filepath.Join(root, "café.txt")
	createFile(t, decomposed)
	createFile(t, composed)

	// Perform conversion.
	result, err := ConvertTree(root, false, FormComposed, nil)
	if err != nil {
		t.Fatal("unable to convert tree:", err)
	}

	// Verify that the conflict was detected and that both entries survived.
	if result.Conflicts != 1 {
		t.Error("unexpected conflict count:", result.Conflicts)
	}
	if _, err := os.Lstat(decomposed); err != nil {
		t.Error("decomposed entry was modified despite collision")
	}
	if _, err := os.Lstat(composed); err != nil {
		t.Error("composed entry was disturbed")
	}
}

func TestConvertTreeFileRoot(t *testing.T) {
	// Create a single decomposed file and point conversion directly at it.
	root := t.TempDir()
	decomposed := filepath.Join(root, norm.NFD.String("café.txt"))
	createFile(t, decomposed)

	result, err := ConvertTree(decomposed, true, FormComposed, nil)
	if err != nil {
		t.Fatal("unable to convert file:", err)
	}
	if result.Converted != 1 {
		t.Error("unexpected conversion count:", result.Converted)
	}

	// Verify that the file now carries the composed name.
	if _, err := os.Lstat(filepath.Join(root, "café.txt")); err != nil {
		t.Error("composed file missing after conversion:", err)
	}
	if _, err := os.Lstat(decomposed); !os.IsNotExist(err) {
		t.Error("decomposed file still present after conversion")
	}
}

func TestConvertTreeDecompose(t *testing.T) {
	// Create composed entries at two levels.
	root := t.TempDir()
	subdirectory := filepath.Join(root, "입력")
	if err := os.Mkdir(subdirectory, 0700); err != nil {
		t.Fatal("unable to create subdirectory:", err)
	}
	createFile(t, filepath.Join(subdirectory, "café.txt"))

	// Perform a conversion toward decomposed form.
	result, err := ConvertTree(root, true, FormDecomposed, nil)
	if err != nil {
		t.Fatal("unable to convert tree:", err)
	}
	if result.Converted != 2 {
		t.Error("unexpected conversion count:", result.Converted)
	}

	// Verify that every remaining entry name is decomposed.
	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if base := filepath.Base(path); !norm.NFD.IsNormalString(base) {
			t.Errorf("entry not decomposed after conversion: %s", path)
		}
		return nil
	}); err != nil {
		t.Fatal("unable to walk tree:", err)
	}
}
