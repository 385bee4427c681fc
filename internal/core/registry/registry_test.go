package registry

import (
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/pagegate/internal/core/domain"
)

func TestBuild_NoDefault(t *testing.T) {
	b := NewBuilder[string]()
	_ = b.Register("/a", "a")

	if _, err := b.Build(); !errors.Is(err, domain.ErrNoDefaultHandler) {
		t.Errorf("Build() error = %v, want %v", err, domain.ErrNoDefaultHandler)
	}
}

func TestTable_Resolve(t *testing.T) {
	b := NewBuilder[string]()
	_ = b.Register("/a", "first")
	_ = b.Register("/a", "second")
	_ = b.Register("/b", "b")
	_ = b.RegisterDefault("default")

	table, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	tests := []struct {
		path      string
		want      string
		wantExact bool
	}{
		{"/a", "second", true},
		{"/b", "b", true},
		{"/a/", "default", false},
		{"/A", "default", false},
		{"", "default", false},
		{"/missing", "default", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, exact := table.Resolve(tt.path)
			if got != tt.want || exact != tt.wantExact {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.path, got, exact, tt.want, tt.wantExact)
			}
		})
	}
}

func TestTable_Paths(t *testing.T) {
	b := NewBuilder[int]()
	_ = b.Register("/z", 1)
	_ = b.Register("/a", 2)
	_ = b.RegisterDefault(0)
	table, _ := b.Build()

	if got, want := table.Paths(), []string{"/a", "/z"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestBuilder_Frozen(t *testing.T) {
	b := NewBuilder[int]()
	_ = b.RegisterDefault(0)
	table, _ := b.Build()

	if err := b.Register("/late", 1); !errors.Is(err, domain.ErrRegistryFrozen) {
		t.Errorf("Register() after Build error = %v, want %v", err, domain.ErrRegistryFrozen)
	}
	if err := b.RegisterDefault(2); !errors.Is(err, domain.ErrRegistryFrozen) {
		t.Errorf("RegisterDefault() after Build error = %v, want %v", err, domain.ErrRegistryFrozen)
	}
	if _, exact := table.Resolve("/late"); exact {
		t.Error("late registration leaked into the table")
	}
}
