package storage

import (
	"bytes"
	"errors"
	"testing"
)

// testDB runs the shared test suite against a DB implementation.
func testDB(t *testing.T, db DB) {
	t.Helper()

	t.Run("PutGet", func(t *testing.T) {
		if err := db.Put([]byte("wallet"), []byte(`{"version":"1.0"}`)); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
		val, err := db.Get([]byte("wallet"))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if string(val) != `{"version":"1.0"}` {
			t.Errorf("Get() = %q", val)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() missing = %v, want ErrNotFound", err)
		}
	})

	t.Run("Has", func(t *testing.T) {
		db.Put([]byte("exists"), []byte("yes"))
		if ok, err := db.Has([]byte("exists")); err != nil || !ok {
			t.Errorf("Has(exists) = %v, %v", ok, err)
		}
		if ok, err := db.Has([]byte("missing")); err != nil || ok {
			t.Errorf("Has(missing) = %v, %v", ok, err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		db.Put([]byte("ow"), []byte("first"))
		db.Put([]byte("ow"), []byte("second"))
		if val, _ := db.Get([]byte("ow")); string(val) != "second" {
			t.Errorf("Get() after overwrite = %q, want second", val)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db.Put([]byte("del"), []byte("value"))
		if err := db.Delete([]byte("del")); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := db.Get([]byte("del")); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get() after Delete() = %v, want ErrNotFound", err)
		}
		if err := db.Delete([]byte("never-existed")); err != nil {
			t.Errorf("Delete() missing key error: %v", err)
		}
	})

	t.Run("ValueIsCopied", func(t *testing.T) {
		v := []byte("abc")
		db.Put([]byte("copy"), v)
		v[0] = 'x'
		got, _ := db.Get([]byte("copy"))
		got[1] = 'y'
		again, _ := db.Get([]byte("copy"))
		if !bytes.Equal(again, []byte("abc")) {
			t.Errorf("stored value aliased caller memory: %q", again)
		}
	})

	t.Run("ForEachOrdered", func(t *testing.T) {
		db.Put([]byte("w/c"), []byte("3"))
		db.Put([]byte("w/a"), []byte("1"))
		db.Put([]byte("w/b"), []byte("2"))
		db.Put([]byte("x/a"), []byte("4"))

		var keys, vals []string
		err := db.ForEach([]byte("w/"), func(key, value []byte) error {
			keys = append(keys, string(key))
			vals = append(vals, string(value))
			return nil
		})
		if err != nil {
			t.Fatalf("ForEach() error: %v", err)
		}
		if len(keys) != 3 || keys[0] != "w/a" || keys[2] != "w/c" {
			t.Errorf("ForEach keys = %v", keys)
		}
		if len(vals) != 3 || vals[0] != "1" || vals[2] != "3" {
			t.Errorf("ForEach values = %v", vals)
		}
	})

	t.Run("ForEachEmpty", func(t *testing.T) {
		count := 0
		db.ForEach([]byte("nothing/"), func(_, _ []byte) error {
			count++
			return nil
		})
		if count != 0 {
			t.Errorf("ForEach(nothing/) count = %d, want 0", count)
		}
	})
}

func TestMemoryDB(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB_InMemory(t *testing.T) {
	db, err := NewBadgerInMemory()
	if err != nil {
		t.Fatalf("NewBadgerInMemory() error: %v", err)
	}
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB_Persistence(t *testing.T) {
	dir := t.TempDir()

	db1, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	db1.Put([]byte("persist"), []byte("data"))
	db1.Close()

	db2, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() reopen error: %v", err)
	}
	defer db2.Close()

	val, err := db2.Get([]byte("persist"))
	if err != nil {
		t.Fatalf("Get() after reopen error: %v", err)
	}
	if string(val) != "data" {
		t.Errorf("persisted value = %q, want %q", val, "data")
	}
}

func TestBadgerDB_Locked(t *testing.T) {
	dir := t.TempDir()
	db, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()

	if _, err := NewBadger(dir); err == nil {
		t.Error("opening a locked database should fail")
	}
}
