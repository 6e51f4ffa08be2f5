package domain

// Courts is the closed set of facility names an issue may be reported
// against. The list mirrors the communities the maintenance team covers.
var Courts = []string{
	"AL MAHRA", "AL REEM 1", "AL REEM 2", "AL REEM 3", "ALMA",
	"ALVORADA 1", "ALVORADA 2", "HATTAN", "MIRADOR", "MIRADOR LA COLLECCION",
	"PALMERA 2", "PALMERA 4", "SAHEEL", "MIRA 2", "MIRA 4",
	"MIRA 5 A", "MIRA 5 B", "MIRA OASIS 1", "MIRA OASIS 2",
	"MIRA OASIS 3 A", "MIRA OASIS 3 B", "MIRA OASIS 3 C",
	"AR2 ROSA", "AR2 PALMA", "AR2 FITNESS FIRST",
}

// ValidCourt reports whether name is one of the known courts.
func ValidCourt(name string) bool {
	for _, c := range Courts {
		if c == name {
			return true
		}
	}
	return false
}
