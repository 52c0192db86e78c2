// azrelay is a thin HTTP relay that forwards a single chat message to an
// Azure OpenAI chat completions deployment and returns the reply text.
//
// Usage:
//
//	# Configure from the environment and start the server
//	export AZURE_OPENAI_ENDPOINT=https://my-resource.openai.azure.com/
//	export AZURE_OPENAI_API_KEY=...
//	export AZURE_OPENAI_DEPLOYMENT=Plastic_Boat
//	azrelay run
//
//	# Start with a configuration file
//	azrelay run --config /etc/azrelay/config.yaml
//
//	# Check configuration and the upstream CA bundle
//	azrelay validate
//
//	# Relay one message from the command line
//	azrelay send "How can I reduce plastic waste?"
package main

func main() {
	Execute()
}
