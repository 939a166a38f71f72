// Package provider talks to an OpenAI-compatible chat completion API.
//
// The default target is Groq (https://api.groq.com/openai/v1), but any
// service implementing POST {base}/chat/completions works.
//
// Every failure returned by Client.Complete is a *Error whose Kind tells
// the caller what went wrong:
//   - KindTimeout   - the call exceeded its deadline
//   - KindTransport - the request never produced an HTTP response
//   - KindStatus    - the provider answered with a non-2xx status
//   - KindMalformed - the response body could not be used
//
// Example usage:
//
//	client := provider.NewClient(provider.Config{APIKey: key})
//	reply, err := client.Complete(ctx, provider.CompletionRequest{
//	    Messages:  history,
//	    MaxTokens: 300,
//	})
//	var perr *provider.Error
//	if errors.As(err, &perr) && perr.Kind == provider.KindTimeout {
//	    // ...
//	}
package provider
