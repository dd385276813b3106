package reports

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/angelmondragon/salesreport/internal/salesreport"
)

// Digest fingerprints everything that determines a report: the dataset,
// the bonus rates and whether invalid records are skipped.
func Digest(data *salesreport.Dataset, rates salesreport.BonusRates, lenient bool) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode dataset: %w", err)
	}
	h := xxhash.New()
	_, _ = h.Write(payload)
	_, _ = h.WriteString("|" + rates.First.String() + "|" + rates.TopThree.String() + "|" + rates.Default.String())
	_, _ = h.WriteString("|lenient=" + strconv.FormatBool(lenient))
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
