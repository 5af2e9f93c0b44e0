package profile

import "strings"

// RepliconName derives a hit's replicon name from its hit_id and the
// database layout ("Replicon naming"): for a gembase DB, a hit_id
// of the form `A_B_C_..._seq` yields `replicon_name = "A_B_C_..."` (every
// underscore-separated segment but the last). For ordered_replicon and
// unordered DBs, the replicon name is the DB file name itself.
func RepliconName(hitID, dbFileName string, gembase bool) string {
	if !gembase {
		return dbFileName
	}
	idx := strings.LastIndexByte(hitID, '_')
	if idx < 0 {
		return hitID
	}
	return hitID[:idx]
}
