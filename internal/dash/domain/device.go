package domain

// NetworkDevice is a hardware address seen by the filter, joined with one of its IPs.
type NetworkDevice struct {
	ID         int64   `db:"id" json:"id"`
	MAC        string  `db:"mac" json:"mac"`
	Interface  *string `db:"interface" json:"interface"`
	FirstSeen  *int64  `db:"first_seen" json:"first_seen"`
	LastQuery  *int64  `db:"last_query" json:"last_query"`
	NumQueries *int64  `db:"num_queries" json:"num_queries"`
	Vendor     *string `db:"vendor" json:"vendor"`
	IP         *string `db:"ip" json:"ip"`
	Hostname   *string `db:"hostname" json:"hostname"`
	Nickname   *string `db:"-" json:"nickname"`
	Icon       *string `db:"-" json:"icon"`
}

// DeviceNickname is the dashboard-owned label for a hardware address.
type DeviceNickname struct {
	MAC      string  `json:"mac"`
	Nickname string  `json:"nickname"`
	Icon     *string `json:"icon"`
}
