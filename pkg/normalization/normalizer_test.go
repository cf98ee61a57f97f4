package normalization

import (
	"testing"

	"golang.org/x/text/unicode/norm"
)

// decompose produces the NFD form of a string for test fixtures.
func decompose(s string) string {
	return norm.NFD.String(s)
}

func TestClassification(t *testing.T) {
	// Define test cases.
	tests := []struct {
		name     string
		expected Form
	}{
		{"plain.txt", FormComposed},
		{"café.txt", FormComposed},
		{decompose("café.txt"), FormDecomposed},
		{decompose("카페.txt"), FormDecomposed},
		{"über café " + decompose("naïve"), FormDecomposed},
		{"", FormComposed},
	}

	// Process test cases.
	for _, test := range tests {
		if form := Classify(test.name); form != test.expected {
			t.Errorf("classification of %q incorrect: %v != %v", test.name, form, test.expected)
		}
	}
}

func TestComposeIdempotent(t *testing.T) {
	// Define test cases, including names with no composed equivalent and
	// names mixing composed and decomposed sequences.
	tests := []string{
		"plain.txt",
		decompose("café.txt"),
		decompose("테스트.txt"),
		"mixed-é-" + decompose("é") + ".txt",
		"한글 café",
	}

	// Verify that composing twice yields the same result as composing once.
	for _, name := range tests {
		once := Compose(name)
		twice := Compose(once)
		if twice != once {
			t.Errorf("composition of %q not idempotent", name)
		}
		if !IsComposed(once) {
			t.Errorf("composed form of %q not classified as composed", name)
		}
	}
}

func TestComposedFormNoOp(t *testing.T) {
	// Verify that already-composed names are returned unchanged with no
	// conversion indicated.
	for _, name := range []string{"plain.txt", "café.txt", "카페", ""} {
		if result, needed := ComposedForm(name); needed {
			t.Errorf("conversion incorrectly indicated for %q", name)
		} else if result != name {
			t.Errorf("composed name incorrectly altered: %q != %q", result, name)
		}
	}
}

func TestComposedFormConversion(t *testing.T) {
	// Verify that a decomposed name converts to its composed equivalent.
	decomposed := decompose("résumé.txt")
	composed, needed := ComposedForm(decomposed)
	if !needed {
		t.Fatal("conversion not indicated for decomposed name")
	}
	if composed != "résumé.txt" {
		t.Errorf("composed form incorrect: %q", composed)
	}
	if !IsComposed(composed) {
		t.Error("composed form not classified as composed")
	}
}

func TestDecomposedForm(t *testing.T) {
	// Verify that a composed name converts to its decomposed equivalent and
	// that an already-decomposed name is returned unchanged.
	decomposed, needed := DecomposedForm("café.txt")
	if !needed {
		t.Fatal("conversion not indicated for composed name")
	}
	if decomposed != decompose("café.txt") {
		t.Errorf("decomposed form incorrect: %q", decomposed)
	}
	if result, needed := DecomposedForm(decomposed); needed {
		t.Error("conversion incorrectly indicated for decomposed name")
	} else if result != decomposed {
		t.Errorf("decomposed name incorrectly altered: %q != %q", result, decomposed)
	}
}

func TestRendered(t *testing.T) {
	// Verify that rendering obeys the requested target form.
	decomposed := decompose("한글.txt")
	if result, needed := Rendered(decomposed, FormComposed); !needed || result != "한글.txt" {
		t.Errorf("composed rendering incorrect: %q (needed %v)", result, needed)
	}
	if result, needed := Rendered("한글.txt", FormDecomposed); !needed || result != decomposed {
		t.Errorf("decomposed rendering incorrect: %q (needed %v)", result, needed)
	}
	if _, needed := Rendered("plain.txt", FormComposed); needed {
		t.Error("conversion incorrectly indicated for plain name")
	}
}
