// Daybook is a daily journaling server with weekly AI reflections.
//
// Users write one journal entry per UTC day; once a week an AI-generated
// reflection summarizes the entries. Generation is guarded by a per-user
// cooldown, a monthly budget, and an idempotent week cache, and every route
// sits behind a sliding-window rate limiter.
//
// Usage:
//
//	# Start the server with the default configuration
//	daybook run
//
//	# Start with a custom configuration file
//	daybook run --config /etc/daybook/config.yaml
//
//	# Validate a configuration file without starting
//	daybook validate
//
//	# Show version information
//	daybook version
package main

func main() {
	Execute()
}
