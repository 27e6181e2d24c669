package watchdog

// LegacyAssets returns the fixed legacy-origin assets. These sites predate the
// roster API and are defined by hand; their ledger rows are matched by the
// same (scheme, name, type) identity as everything else.
func LegacyAssets() []Asset {
	return []Asset{
		{ID: "DXPWMS-02", Name: "Pump House I", Type: "Basic", Zone: "N/A", Scheme: "Humaipur PWSS", Origin: OriginLegacy, StationID: "DXPWMS-02"},
		{ID: "DXPWMS-03", Name: "Pump House II", Type: "Basic", Zone: "N/A", Scheme: "Humaipur PWSS", Origin: OriginLegacy, StationID: "DXPWMS-03"},
		{ID: "DXPWMS-01", Name: "Pump House III", Type: "Intermediate", Zone: "N/A", Scheme: "Humaipur PWSS", Origin: OriginLegacy, StationID: "DXPWMS-01"},
		{ID: "DXPWMS-04", Name: "Pump House IV", Type: "Basic", Zone: "N/A", Scheme: "Humaipur PWSS", Origin: OriginLegacy, StationID: "DXPWMS-04"},
	}
}

// mapPumpHouseType translates roster API type names into the closed set of
// ledger pump-house classes. Unrecognized names pass through unchanged.
func mapPumpHouseType(apiName string) string {
	switch apiName {
	case "OHR":
		return "Intermediate"
	case "Non-OHR":
		return "Basic"
	case "Non-OHR Direct", "Non-OHR-Direct":
		return "Direct"
	default:
		return apiName
	}
}
