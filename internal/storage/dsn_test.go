package storage_test

import (
	"testing"

	"sketchbook/internal/storage"
)

func TestPostgresDSN_Defaults(t *testing.T) {
	got := storage.PostgresDSN(storage.Endpoint{Host: "db", Database: "sketch", Username: "ann"}, "pw")
	want := "host=db port=5432 user=ann password=pw dbname=sketch sslmode=disable"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestMySQLDSN(t *testing.T) {
	got := storage.MySQLDSN(storage.Endpoint{Host: "db", Port: 3307, Database: "sketch", Username: "ann", SSLMode: "require"}, "pw")
	want := "ann:pw@tcp(db:3307)/sketch?parseTime=true&charset=utf8mb4&tls=true"
	if got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestMongoURI(t *testing.T) {
	tests := []struct {
		name string
		e    storage.Endpoint
		pw   string
		want string
	}{
		{"anonymous", storage.Endpoint{Host: "localhost"}, "", "mongodb://localhost:27017"},
		{"credentials", storage.Endpoint{Host: "h", Port: 1, Username: "u"}, "p@ss", "mongodb://u:p%40ss@h:1"},
		{"full uri", storage.Endpoint{Host: "mongodb+srv://u:<password>@cluster/x"}, "pw", "mongodb+srv://u:pw@cluster/x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MongoURI(tt.e, tt.pw); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]storage.Dialect{
		"":         storage.DialectSQLite,
		"SQLite":   storage.DialectSQLite,
		"postgres": storage.DialectPostgres,
		"mysql":    storage.DialectMySQL,
	} {
		got, err := storage.ParseDialect(in)
		if err != nil || got != want {
			t.Errorf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := storage.ParseDialect("oracle"); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}
