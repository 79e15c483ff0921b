package globals

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const UserEmailKey ContextKey = "userEmail"
const RequestIDKey ContextKey = "requestId"
