package domain

// DashboardStats is the admin dashboard aggregate snapshot.
type DashboardStats struct {
	TotalUsers        int     `json:"total_users"`
	TotalProviders    int     `json:"total_providers"`
	PendingProviders  int     `json:"pending_providers"`
	TotalBookings     int     `json:"total_bookings"`
	CompletedBookings int     `json:"completed_bookings"`
	CancelledBookings int     `json:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
}

type UpdateUserRoleRequest struct {
	Role Role `json:"role"`
}

type VerifyProviderRequest struct {
	Status VerificationStatus `json:"status"` // verified or rejected
}
