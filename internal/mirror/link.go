package mirror

import (
	"fmt"
	"strconv"

	"github.com/mesh-intelligence/shadowsync/pkg/types"
)

// SpreadsheetURL is the prefix of every row link.
const SpreadsheetURL = "https://docs.google.com/spreadsheets/d/"

// gidNotFound is written in place of a gid when the sheet name resolves to
// no sheet.
const gidNotFound = "null"

// RowLink returns a HYPERLINK formula pointing at row of sheetName. A sheet
// that does not exist yields a link with a null gid rather than an error;
// only storage failures are returned.
func RowLink(wb types.Workbook, spreadsheetID, sheetName string, row int) (string, error) {
	gid, ok, err := wb.SheetGID(sheetName)
	if err != nil {
		return "", fmt.Errorf("resolving gid of %q: %w", sheetName, err)
	}
	gidText := gidNotFound
	if ok {
		gidText = strconv.FormatInt(gid, 10)
	}
	url := fmt.Sprintf("%s%s/edit#gid=%s&range=A%d", SpreadsheetURL, spreadsheetID, gidText, row)
	return fmt.Sprintf(`=HYPERLINK("%s", "Go to Row %d")`, url, row), nil
}
