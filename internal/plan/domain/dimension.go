package domain

// Dimension identifies one metered usage dimension. Each dimension pairs a
// tracker counter with the plan ceiling of the same name, replacing the
// by-column-name lookups the quota middleware would otherwise need.
type Dimension string

const (
	DimOrganizations     Dimension = "organizations"
	DimSubUsers          Dimension = "sub_users"
	DimReportsDownload   Dimension = "reports_download"
	DimReportViewsPerDay Dimension = "report_views_per_day"
	DimProducts          Dimension = "products"
	DimBillsCreation     Dimension = "bills_creation"
	DimOrdersPerMonth    Dimension = "orders_per_month"
	DimBarcodeScans      Dimension = "barcode_scans"
	DimAPICalls          Dimension = "api_calls"
)

// Dimensions lists every metered dimension.
func Dimensions() []Dimension {
	return []Dimension{
		DimOrganizations,
		DimSubUsers,
		DimReportsDownload,
		DimReportViewsPerDay,
		DimProducts,
		DimBillsCreation,
		DimOrdersPerMonth,
		DimBarcodeScans,
		DimAPICalls,
	}
}

func (d Dimension) Valid() bool {
	switch d {
	case DimOrganizations, DimSubUsers, DimReportsDownload, DimReportViewsPerDay,
		DimProducts, DimBillsCreation, DimOrdersPerMonth, DimBarcodeScans, DimAPICalls:
		return true
	default:
		return false
	}
}
