package domain

// EmptyLotPlaceholder is printed in the product column of unassigned lots.
const EmptyLotPlaceholder = "Empty"

var ReportHeader = []string{"Street", "Lot", "Product", "Quantity", "Sold", "Depreciated"}

type ReportRow struct {
	Street      string
	Lot         string
	Product     string
	Quantity    int
	Sold        int
	Depreciated int
}

type Report struct {
	Rows []ReportRow
}

// BuildReport flattens inv into one row per lot. The quantity column is
// quantity + depreciated, i.e. stock as if depreciation had not been taken out.
func BuildReport(inv Inventory) Report {
	rows := make([]ReportRow, 0, inv.LotCount())
	for _, street := range inv.Streets {
		for _, lot := range street.Lots {
			product := lot.Product
			if product == "" {
				product = EmptyLotPlaceholder
			}
			rows = append(rows, ReportRow{
				Street:      street.Name,
				Lot:         lot.Name,
				Product:     product,
				Quantity:    lot.Quantity + lot.Depreciated,
				Sold:        lot.Sold,
				Depreciated: lot.Depreciated,
			})
		}
	}
	return Report{Rows: rows}
}

// Values returns the row in header order.
func (r ReportRow) Values() []interface{} {
	return []interface{}{r.Street, r.Lot, r.Product, r.Quantity, r.Sold, r.Depreciated}
}

// Table returns the header followed by every row.
func (r Report) Table() [][]interface{} {
	header := make([]interface{}, len(ReportHeader))
	for i, h := range ReportHeader {
		header[i] = h
	}
	table := make([][]interface{}, 0, len(r.Rows)+1)
	table = append(table, header)
	for _, row := range r.Rows {
		table = append(table, row.Values())
	}
	return table
}
