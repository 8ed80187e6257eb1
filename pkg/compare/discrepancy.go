package compare

import (
	"github.com/carverauto/assetradar/pkg/models"
)

// Discrepancies lists the shared fields whose canonical and source values
// differ. Rows without an observation have none. A value present on one
// side only counts as a difference.
func Discrepancies(row *models.ComparisonRow) []models.AssetField {
	if row == nil || !row.HasObservation() {
		return nil
	}

	var out []models.AssetField

	pairs := []struct {
		field     models.AssetField
		canonical *string
		source    *string
	}{
		{models.FieldHostName, row.HostName, row.SourceHostName},
		{models.FieldMAC, row.MAC, row.SourceMAC},
		{models.FieldIPAddress, row.IPAddress, row.SourceIPAddress},
	}

	for _, p := range pairs {
		if !sameValue(p.canonical, p.source) {
			out = append(out, p.field)
		}
	}

	return out
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
