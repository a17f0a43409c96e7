// Package openai implements the chat completions adapter for OpenAI and
// Azure OpenAI.
//
// Both services share the same streaming wire format. They differ in the
// URL layout and the credential header:
//
//	Azure:  POST {endpoint}/openai/deployments/{deployment}/chat/completions?api-version={version}
//	        api-key: {key}
//
//	OpenAI: POST {base_url}/chat/completions
//	        Authorization: Bearer {key}
//
// A ProviderConfig with Type "azure" selects the first form and requires
// Deployment and APIVersion.
//
// # Basic Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    Name:       "azure",
//	    Type:       providers.TypeAzure,
//	    BaseURL:    os.Getenv("AZURE_OPENAI_ENDPOINT"),
//	    APIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
//	    APIVersion: "2024-05-01-preview",
//	    Deployment: "gpt-4o",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	chunks, err := provider.StreamCompletion(ctx, req)
//
// # Stream Decoding
//
// The body is read line by line. Only "data: " lines are decoded; the
// "[DONE]" line ends the stream. Azure prefixes every stream with a chunk
// whose choices array is empty and which carries prompt filter results.
// Such chunks decode to a StreamChunk with an empty Delta rather than an
// error. A chunk carrying an "error" object ends the stream with a
// providers.StreamError.
package openai
