package constants

// DefaultResolutionDPI is the rasterization resolution used when none is
// configured. 72 dpi keeps page pixels aligned with PDF points.
const DefaultResolutionDPI = 72

// DefaultReportColumns is the number of page cells per row in the HTML report.
const DefaultReportColumns = 3
