package models

// DashboardRequest is the query surface of the dashboard endpoint. The toggle
// fields are pointers so an explicit ?garch=false survives defaulting.
type DashboardRequest struct {
	Start string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End   string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Garch *bool  `query:"garch" default:"true"`
	LSTM  *bool  `query:"lstm" default:"true"`
}

// Toggles resolves the pointer fields; an unset toggle counts as on.
func (r *DashboardRequest) Toggles() DisplayToggles {
	return DisplayToggles{
		ShowGARCH:  r.Garch == nil || *r.Garch,
		ShowHybrid: r.LSTM == nil || *r.LSTM,
	}
}
