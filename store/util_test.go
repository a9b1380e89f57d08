package store

import (
	"os"
	"reflect"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func setup(t testing.TB) *DB {
	t.Helper()

	dbFile := must(os.CreateTemp("", "store_test_*.db"))
	t.Logf("DB: %s", dbFile.Name())
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db := must(Open(dbFile.Name(), Options{
		IsTesting: true,
	}))
	t.Cleanup(func() { db.Close() })
	return db
}

// eachStorage runs f against a Bolt-backed and an in-memory store.
func eachStorage(t *testing.T, f func(t *testing.T, db *DB)) {
	t.Run("bolt", func(t *testing.T) {
		f(t, setup(t))
	})
	t.Run("mem", func(t *testing.T) {
		db := OpenMemory(Options{})
		t.Cleanup(func() { db.Close() })
		f(t, db)
	})
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isnil[T any, P ~*T](t testing.TB, a P) {
	if a != nil {
		t.Helper()
		t.Errorf("** got &%v, wanted nil", *a)
	}
}
