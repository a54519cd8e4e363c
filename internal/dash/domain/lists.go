package domain

// DomainListEntry is a row of the filter's domainlist table.
type DomainListEntry struct {
	ID           int64   `db:"id" json:"id"`
	Type         int     `db:"type" json:"type"`
	Domain       string  `db:"domain" json:"domain"`
	Enabled      bool    `db:"enabled" json:"enabled"`
	DateAdded    int64   `db:"date_added" json:"date_added"`
	DateModified int64   `db:"date_modified" json:"date_modified"`
	Comment      *string `db:"comment" json:"comment"`
}

// Adlist is a subscribed block list.
type Adlist struct {
	ID        int64   `db:"id" json:"id"`
	Address   string  `db:"address" json:"address"`
	Enabled   bool    `db:"enabled" json:"enabled"`
	DateAdded int64   `db:"date_added" json:"date_added"`
	Comment   *string `db:"comment" json:"comment"`
	Number    *int64  `db:"number" json:"number"`
}

// PresetDomain is one entry of a preset bundle.
type PresetDomain struct {
	Domain string `json:"domain"`
	Type   string `json:"type"`
}

type Preset struct {
	Name    string         `json:"name"`
	Domains []PresetDomain `json:"domains"`
}

// Presets are the curated one-click bundles offered by the UI.
var Presets = map[string]Preset{
	"social": {
		Name: "Social Media",
		Domains: []PresetDomain{
			{Domain: "reddit.com", Type: "wildcard"},
			{Domain: "twitter.com", Type: "wildcard"},
			{Domain: "x.com", Type: "wildcard"},
			{Domain: "instagram.com", Type: "wildcard"},
			{Domain: "tiktok.com", Type: "wildcard"},
			{Domain: "facebook.com", Type: "wildcard"},
			{Domain: `(\.|^)(reddit|redd\.it|redditstatic|redditmedia)\.`, Type: "regex_black"},
			{Domain: `(\.|^)(twimg|t\.co)\.`, Type: "regex_black"},
			{Domain: `(\.|^)(cdninstagram|fbcdn)\.`, Type: "regex_black"},
			{Domain: `(\.|^)(tiktokcdn|musical\.ly)\.`, Type: "regex_black"},
		},
	},
	"video": {
		Name: "Video Streaming",
		Domains: []PresetDomain{
			{Domain: "youtube.com", Type: "wildcard"},
			{Domain: "twitch.tv", Type: "wildcard"},
			{Domain: "netflix.com", Type: "wildcard"},
			{Domain: `(\.|^)(googlevideo|ytimg|yt3\.ggpht)\.`, Type: "regex_black"},
			{Domain: `(\.|^)(ttvnw|jtvnw)\.`, Type: "regex_black"},
			{Domain: `(\.|^)(nflxvideo|nflximg|nflxso)\.`, Type: "regex_black"},
		},
	},
	"news": {
		Name: "News",
		Domains: []PresetDomain{
			{Domain: "news.ycombinator.com", Type: "blacklist"},
			{Domain: "cnn.com", Type: "wildcard"},
			{Domain: "bbc.com", Type: "wildcard"},
			{Domain: "nytimes.com", Type: "wildcard"},
			{Domain: "foxnews.com", Type: "wildcard"},
		},
	},
	"gaming": {
		Name: "Gaming",
		Domains: []PresetDomain{
			{Domain: "store.steampowered.com", Type: "blacklist"},
			{Domain: "steamcommunity.com", Type: "blacklist"},
			{Domain: `(\.|^)(epicgames|unrealengine)\.`, Type: "regex_black"},
			{Domain: "discord.com", Type: "wildcard"},
			{Domain: `(\.|^)discord(app)?\.`, Type: "regex_black"},
		},
	},
}
