// Meridian is a temporal contextual-integrity policy evaluator.
//
// It decides access requests (who sends what data about whom to whom, under
// which transmission principle) against ordered policy rules, enriched with
// temporal context: business hours, incidents, legal holds, and time-bounded
// role elevations.
//
// Usage:
//
//	# Start the evaluator with default configuration
//	meridian run
//
//	# Start with a custom configuration file
//	meridian run --config /etc/meridian/config.yaml
//
//	# Validate configuration, rules, and catalog without starting
//	meridian validate
//
//	# Show version information
//	meridian version
package main

func main() {
	Execute()
}
