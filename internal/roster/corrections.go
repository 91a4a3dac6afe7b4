package roster

import "regexp"

var reLetterRun = regexp.MustCompile(`[\p{L}\p{M}]+`)

// nameCorrections restores diacritics that CRM operators habitually drop
// when typing rosters. Keys are whole uppercased tokens; values are the
// canonical accented spellings.
var nameCorrections = map[string]string{
	// Given names.
	"ADRIAN":     "ADRIÁN",
	"AGUSTIN":    "AGUSTÍN",
	"ALVARO":     "ÁLVARO",
	"ANDRES":     "ANDRÉS",
	"ANGEL":      "ÁNGEL",
	"ANGELA":     "ÁNGELA",
	"ANGELES":    "ÁNGELES",
	"ASUNCION":   "ASUNCIÓN",
	"BARBARA":    "BÁRBARA",
	"BELEN":      "BELÉN",
	"BENJAMIN":   "BENJAMÍN",
	"CESAR":      "CÉSAR",
	"CONCEPCION": "CONCEPCIÓN",
	"CRISTOBAL":  "CRISTÓBAL",
	"DAMIAN":     "DAMIÁN",
	"DARIO":      "DARÍO",
	"FATIMA":     "FÁTIMA",
	"FELIX":      "FÉLIX",
	"GERMAN":     "GERMÁN",
	"HECTOR":     "HÉCTOR",
	"INES":       "INÉS",
	"IVAN":       "IVÁN",
	"JESUS":      "JESÚS",
	"JOAQUIN":    "JOAQUÍN",
	"JOSE":       "JOSÉ",
	"JULIAN":     "JULIÁN",
	"LUCIA":      "LUCÍA",
	"MARIA":      "MARÍA",
	"MARTIN":     "MARTÍN",
	"MONICA":     "MÓNICA",
	"NICOLAS":    "NICOLÁS",
	"OSCAR":      "ÓSCAR",
	"RAMON":      "RAMÓN",
	"RAUL":       "RAÚL",
	"ROCIO":      "ROCÍO",
	"RUBEN":      "RUBÉN",
	"SAUL":       "SAÚL",
	"SEBASTIAN":  "SEBASTIÁN",
	"SOFIA":      "SOFÍA",
	"TOMAS":      "TOMÁS",
	"VERONICA":   "VERÓNICA",
	"VICTOR":     "VÍCTOR",

	// Surnames.
	"ALVAREZ":   "ÁLVAREZ",
	"AVILA":     "ÁVILA",
	"BENITEZ":   "BENÍTEZ",
	"DIAZ":      "DÍAZ",
	"DOMINGUEZ": "DOMÍNGUEZ",
	"FERNANDEZ": "FERNÁNDEZ",
	"GALVEZ":    "GÁLVEZ",
	"GARCIA":    "GARCÍA",
	"GOMEZ":     "GÓMEZ",
	"GONZALEZ":  "GONZÁLEZ",
	"GUTIERREZ": "GUTIÉRREZ",
	"HERNANDEZ": "HERNÁNDEZ",
	"IBANEZ":    "IBÁÑEZ",
	"JIMENEZ":   "JIMÉNEZ",
	"LOPEZ":     "LÓPEZ",
	"MARQUEZ":   "MÁRQUEZ",
	"MARTINEZ":  "MARTÍNEZ",
	"MENDEZ":    "MÉNDEZ",
	"MUNOZ":     "MUÑOZ",
	"NUNEZ":     "NÚÑEZ",
	"ORDONEZ":   "ORDÓÑEZ",
	"PEREZ":     "PÉREZ",
	"RAMIREZ":   "RAMÍREZ",
	"RODRIGUEZ": "RODRÍGUEZ",
	"SAEZ":      "SÁEZ",
	"SANCHEZ":   "SÁNCHEZ",
	"SUAREZ":    "SUÁREZ",
	"VASQUEZ":   "VÁSQUEZ",
	"VAZQUEZ":   "VÁZQUEZ",
	"VELAZQUEZ": "VELÁZQUEZ",
}
