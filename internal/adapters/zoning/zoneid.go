// Package zoning implements the four pluggable partitioning strategies
// (polar, isochrone, clustering, manual) and the balancing post-pass, all
// sharing the domain.ZoningResult output contract.
package zoning

import "fmt"

// mintZoneID produces the <CITY3>NNN zone id convention shared by all
// strategies (spec §4.2), NNN 1-based in strategy order.
func mintZoneID(city3 string, ordinal int) string {
	return fmt.Sprintf("%s%03d", city3, ordinal)
}
