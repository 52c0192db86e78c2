// Package azure implements the Azure OpenAI chat completions provider.
//
// Requests are sent to
//
//	{endpoint}/openai/deployments/{deployment}/chat/completions?api-version={version}
//
// authenticated with the api-key header. Azure does not accept the
// Authorization bearer scheme for key authentication.
package azure
