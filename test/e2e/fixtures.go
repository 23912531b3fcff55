// Package e2e provides full-pipeline tests over the real storage, index, and
// HTTP layers.
package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

// referenceCSV is a small but representative vendor extract: the three source
// tiers, a unicode-decorated name, float-formatted counts, and alt names.
const referenceCSV = `COMPANY_NAME,DOMAIN_NAME,SOURCE,EMPLOYEE_COUNT,INDUSTRY_CAT_STD,COUNTRY,SIZE_DESC_STD,LAST_SEEN_DATE,ALTERNATIVE_NAMES
Microsoft Corporation,microsoft.com,PDL,220000,Software,US,10000+,2024-01-15,MSFT
International Business Machines,ibm.com,BOMBORA,280000.0,Technology,US,10000+,2024-02-01,Big Blue|IBM Corp
Heal Within®,healwithin.com,HGDATA,,,,,,
Globex Corporation,globex.com,PDL,1500,Manufacturing,US,1001-5000,2024-03-01,
Initech,initech.com,HGDATA,50,Software,US,11-50,,
`

// writeReferenceDataset writes the fixture extract into dir and returns its path.
func writeReferenceDataset(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "reference.csv")
	if err := os.WriteFile(path, []byte(referenceCSV), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}
