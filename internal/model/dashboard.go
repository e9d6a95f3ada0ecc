package model

// AdminDashboard aggregates entity counts for the admin landing view.
type AdminDashboard struct {
	Patients            int64                       `json:"patients"`
	Doctors             int64                       `json:"doctors"`
	Admins              int64                       `json:"admins"`
	Appointments        int64                       `json:"appointments"`
	AppointmentsByState map[AppointmentStatus]int64 `json:"appointments_by_status"`
}

// RoleDashboard is the doctor/patient landing view: the caller's own
// upcoming and recent appointments.
type RoleDashboard struct {
	Today    []*AppointmentDetail `json:"today"`
	Upcoming []*AppointmentDetail `json:"upcoming"`
}
