package repository

import "testing"

func TestMapRepositoryAddAndSearch(t *testing.T) {
	r := NewMapRepository[string, int]()
	if err := r.Add("nick", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	v, err := r.Search("nick")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if v != 1 {
		t.Fatalf("Search = %d, want 1", v)
	}
}

func TestMapRepositoryAddTwice(t *testing.T) {
	r := NewMapRepository[string, int]()
	if err := r.Add("nick", 1); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := r.Add("nick", 2); err != ErrAlreadyExists {
		t.Fatalf("second Add = %v, want ErrAlreadyExists", err)
	}
	v, err := r.Search("nick")
	if err != nil || v != 1 {
		t.Fatalf("Search after rejected Add = (%d, %v), want (1, nil)", v, err)
	}
}

func TestMapRepositorySearchMissing(t *testing.T) {
	r := NewMapRepository[string, int]()
	if _, err := r.Search("ghost"); err != ErrNotFound {
		t.Fatalf("Search on absent key = %v, want ErrNotFound", err)
	}
}

func TestMapRepositoryDelete(t *testing.T) {
	r := NewMapRepository[string, int]()
	_ = r.Add("nick", 1)
	if err := r.Delete("nick"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Search("nick"); err != ErrNotFound {
		t.Fatalf("Search after delete = %v, want ErrNotFound", err)
	}
	if err := r.Delete("nick"); err != ErrNotFound {
		t.Fatalf("Delete absent = %v, want ErrNotFound", err)
	}
}

func TestMapRepositoryUpdate(t *testing.T) {
	r := NewMapRepository[string, int]()
	_ = r.Add("nick", 1)
	if err := r.Update("nick", 2); err != nil {
		t.Fatalf("Update: %v", err)
	}
	v, _ := r.Search("nick")
	if v != 2 {
		t.Fatalf("Search after update = %d, want 2", v)
	}
	if err := r.Update("ghost", 9); err != ErrNotFound {
		t.Fatalf("Update absent = %v, want ErrNotFound", err)
	}
}

func TestMapRepositoryFindAll(t *testing.T) {
	r := NewMapRepository[string, int]()
	_ = r.Add("a", 1)
	_ = r.Add("b", 2)
	all, err := r.FindAll()
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 2 || all["a"] != 1 || all["b"] != 2 {
		t.Fatalf("FindAll = %v, want {a:1 b:2}", all)
	}
}
