package repository

import "testing"

func TestNullable(t *testing.T) {
	if v := nullable(""); v.Valid {
		t.Fatal("empty string should map to NULL")
	}
	if v := nullable("+15551234567"); !v.Valid || v.String != "+15551234567" {
		t.Fatalf("nullable = %+v", v)
	}
}

func TestNullFloat(t *testing.T) {
	if v := nullFloat(nil); v.Valid {
		t.Fatal("nil should map to NULL")
	}
	acc := 25.5
	if v := nullFloat(&acc); !v.Valid || v.Float64 != 25.5 {
		t.Fatalf("nullFloat = %+v", v)
	}
}
