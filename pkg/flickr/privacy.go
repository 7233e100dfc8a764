package flickr

// Privacy levels as used by privacy_filter.
const (
	PrivacyPublic        = 1
	PrivacyFriends       = 2
	PrivacyFamily        = 3
	PrivacyFriendsFamily = 4
	PrivacyPrivate       = 5
)

// Granularity of a photo's taken date.
const (
	DateGranularityFull  = 0 // Y-m-d H:i:s
	DateGranularityMonth = 4 // Y-m
	DateGranularityYear  = 6 // Y
	DateGranularityCirca = 8
)

var privacyNames = map[int]string{
	PrivacyPublic:        "public",
	PrivacyFriends:       "friends",
	PrivacyFamily:        "family",
	PrivacyFriendsFamily: "friends_family",
	PrivacyPrivate:       "private",
}

// PrivacyLevel maps the three visibility flags to a privacy level.
// Public wins over the others.
func PrivacyLevel(public, friend, family bool) int {
	switch {
	case public:
		return PrivacyPublic
	case friend && family:
		return PrivacyFriendsFamily
	case friend:
		return PrivacyFriends
	case family:
		return PrivacyFamily
	default:
		return PrivacyPrivate
	}
}

// PrivacyLevelName returns the name of level, or false if there is none.
func PrivacyLevelName(level int) (string, bool) {
	name, ok := privacyNames[level]
	return name, ok
}
