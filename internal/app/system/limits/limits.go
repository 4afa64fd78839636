// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxGroupFormSize is the maximum size for group create/update form
	// submissions. Descriptions may carry HTML.
	MaxGroupFormSize = 256 << 10 // 256 KB

	// MaxMemberFormSize is the maximum size for add-member and invite
	// submissions (lists of usernames and e-mail addresses).
	MaxMemberFormSize = 64 << 10 // 64 KB

	// MaxLoginFormSize is the maximum size for sign-in submissions.
	MaxLoginFormSize = 8 << 10 // 8 KB

	// MaxIdentifiersPerRequest caps how many users one add-member or invite
	// submission may name.
	MaxIdentifiersPerRequest = 200
)
