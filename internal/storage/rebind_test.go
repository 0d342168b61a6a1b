package storage

import "testing"

func TestRebind(t *testing.T) {
	q := `UPDATE canvases SET data = ? WHERE id = ?`
	pg := &DB{dialect: DialectPostgres}
	if got, want := pg.rebind(q), `UPDATE canvases SET data = $1 WHERE id = $2`; got != want {
		t.Errorf("postgres: got %q, want %q", got, want)
	}
	for _, d := range []Dialect{DialectSQLite, DialectMySQL} {
		if got := (&DB{dialect: d}).rebind(q); got != q {
			t.Errorf("%s: query rewritten to %q", d, got)
		}
	}
}
