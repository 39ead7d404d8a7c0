package core

// Fields is a partial record update: field name (storage key) -> new value.
// Persistence implementations must apply it as a targeted field update,
// never a read-modify-write of the whole document.
type Fields map[string]interface{}
