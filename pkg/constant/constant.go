package constant

const (
	// DefaultUserRole is assigned to every newly registered account.
	DefaultUserRole = "user"

	// LocalsUserKey is where the auth middleware stores the verified access
	// claims on the request context.
	LocalsUserKey = "user"
)
