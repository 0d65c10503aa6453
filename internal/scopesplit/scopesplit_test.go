package scopesplit

import (
	"reflect"
	"testing"
)

func TestSplitPlainScopes(t *testing.T) {
	got := Split("ns::Outer::method")
	want := []string{"ns", "Outer", "method"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSplitSuppressesDelimitersInsideAngleBrackets(t *testing.T) {
	got := Split("a::b<c::d>::e")
	want := []string{"a", "b<c::d>", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSplitNestedAngleBrackets(t *testing.T) {
	got := Split("ns::Outer<Foo, Bar<Baz>>::method")
	want := []string{"ns", "Outer<Foo, Bar<Baz>>", "method"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSplitNoDelimiters(t *testing.T) {
	got := Split("method")
	want := []string{"method"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestSuffixes(t *testing.T) {
	got := Suffixes("a::b<c::d>::e")
	want := []string{"a::b<c::d>::e", "b<c::d>::e", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suffixes = %v, want %v", got, want)
	}
}

func TestSuffixesSingleComponent(t *testing.T) {
	got := Suffixes("method")
	want := []string{"method"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suffixes = %v, want %v", got, want)
	}
}
