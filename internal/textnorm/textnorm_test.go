package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"   ":              "",
		"Fonction":         "fonction",
		"fonctión":         "fonction",
		"  Récursivité  ":  "recursivite",
		"ÉCOLE Ça":         "ecole ca",
		"Bases de Données": "bases de donnees",
		"sql":              "sql",
	}
	for in, expect := range cases {
		if got := Normalize(in); got != expect {
			t.Fatalf("normalize %q => %q, expected %q", in, got, expect)
		}
	}
}
