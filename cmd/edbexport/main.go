// Command edbexport manages a document store and exports it to XML.
//
// Usage:
//
//	# Load a YAML fixture into a store
//	edbexport seed --store data.db fixture.yaml
//
//	# Export the store, leaving out secret settings
//	edbexport export --store data.db --output backup.xml --redact-prefix secret.
//
//	# Export a fixture directly, without a store
//	edbexport export --fixture fixture.yaml
//
//	# Show per-collection statistics
//	edbexport stats --store data.db
package main

func main() {
	Execute()
}
