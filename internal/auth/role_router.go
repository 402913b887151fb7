package auth

// Capability is an action a role may perform on the API
type Capability string

const (
	CapSubmitRegistration Capability = "submit_registration"
	CapSubmitArrival      Capability = "submit_arrival"
	CapViewEntries        Capability = "view_entries"
	CapVerifyEntries      Capability = "verify_entries"
	CapApproveEntries     Capability = "approve_entries"
	CapManageCatalog      Capability = "manage_catalog"
	CapManageUsers        Capability = "manage_users"
	CapExportReports      Capability = "export_reports"
)

var allCapabilities = []Capability{
	CapSubmitRegistration,
	CapSubmitArrival,
	CapViewEntries,
	CapVerifyEntries,
	CapApproveEntries,
	CapManageCatalog,
	CapManageUsers,
	CapExportReports,
}

var reviewerCapabilities = []Capability{CapViewEntries, CapVerifyEntries, CapApproveEntries, CapExportReports}
var submitterCapabilities = []Capability{CapSubmitRegistration, CapSubmitArrival, CapViewEntries}

var roleCapabilities = map[Role][]Capability{
	RoleSuperAdmin:    allCapabilities,
	RoleAdmin:         allCapabilities,
	RoleRegionalAdmin: reviewerCapabilities,
	RoleNationalAdmin: reviewerCapabilities,
	RoleLoadingPoint:  reviewerCapabilities,
	RoleMillManager:   submitterCapabilities,
	RoleTransporter:   submitterCapabilities,
	RoleUser:          submitterCapabilities,
}

// Screen is a dashboard page the front end may show
type Screen string

const (
	ScreenDashboard     Screen = "dashboard"
	ScreenRegistration  Screen = "registration"
	ScreenArrival       Screen = "arrival"
	ScreenVerification  Screen = "verification"
	ScreenApproval      Screen = "approval"
	ScreenMills         Screen = "mills"
	ScreenLoadingPoints Screen = "loading_points"
	ScreenHaulage       Screen = "haulage"
	ScreenDevices       Screen = "devices"
	ScreenUsers         Screen = "users"
	ScreenReports       Screen = "reports"
)

// screenRequires gates each screen behind one capability
var screenRequires = []struct {
	screen Screen
	cap    Capability
}{
	{ScreenDashboard, CapViewEntries},
	{ScreenRegistration, CapSubmitRegistration},
	{ScreenArrival, CapSubmitArrival},
	{ScreenVerification, CapVerifyEntries},
	{ScreenApproval, CapApproveEntries},
	{ScreenMills, CapManageCatalog},
	{ScreenLoadingPoints, CapManageCatalog},
	{ScreenHaulage, CapManageCatalog},
	{ScreenDevices, CapManageCatalog},
	{ScreenUsers, CapManageUsers},
	{ScreenReports, CapExportReports},
}

// Can reports whether role r has capability c. Unknown roles have none.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// Capabilities returns a copy of r's capability list
func (r Role) Capabilities() []Capability {
	return append([]Capability(nil), roleCapabilities[r]...)
}

// Screens lists the dashboard screens reachable by r
func (r Role) Screens() []Screen {
	screens := []Screen{}
	for _, s := range screenRequires {
		if r.Can(s.cap) {
			screens = append(screens, s.screen)
		}
	}
	return screens
}
