// Interviewer is a chat relay that streams interview questions from Azure
// OpenAI to a browser or terminal client.
//
// The relay accepts a transcript on GET /chat, prepends the interviewer
// persona and re-publishes the model's reply as server-sent events. The chat
// command is a terminal client for the same endpoint.
//
// Usage:
//
//	# Start the relay (provider settings from AZURE_OPENAI_* variables)
//	interviewer serve
//
//	# Start with a configuration file, reloading it on change
//	interviewer serve --config /etc/interviewer/config.yaml --watch
//
//	# Chat with a running relay
//	interviewer chat --relay-url http://localhost:3000
//
//	# Validate a configuration file
//	interviewer config validate --config config.yaml
//
//	# List recent audit records
//	interviewer audit list --since 24h --format json
package main

func main() {
	Execute()
}
