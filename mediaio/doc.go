// Package mediaio is a client-side orchestration layer over a remote
// generative-media service. It normalizes heterogeneous input, chooses a
// transport by payload size, drives long-running generation jobs to
// completion and classifies backend failures into an actionable taxonomy.
//
// # Architecture
//
// The package is organized leaves first:
//
//   - Resolver: turns a Source (path, bytes, reader, string) into a MediaPayload
//   - Transport: inline-embeds small payloads and uploads large ones (>= 15 MiB)
//   - Classifier: maps backend errors to QuotaExhausted, BillingRequired,
//     Transient or Unknown without losing the cause
//   - Orchestrator: submit, poll and fetch for asynchronous generation jobs
//   - Client: the Analyze, GenerateImage, GenerateVideo, Transcribe and
//     ConvertDocument operations composed from the above
//
// # Quick Start
//
//	backend, err := mediaio.NewGeminiBackend(ctx, os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := mediaio.NewClient(backend, mediaio.WithLogger(logger))
//
//	res, err := client.Analyze(ctx, mediaio.FromString("photo.jpg"), "describe the scene", mediaio.AnalyzeOptions{})
//	fmt.Println(res.Text)
//
//	img, err := client.GenerateImage(ctx, "mountain at sunset", mediaio.ImageOptions{AspectRatio: "16:9"})
//	_, err = img.Save("out/mountain.png")
//
// # Errors
//
// Every backend failure reaches the caller as a *ClassifiedError exactly once.
// Callers should stop retrying when IsTerminal reports true:
//
//	if mediaio.IsTerminal(err) {
//	    // quota is zero or billing is required; retrying cannot succeed
//	}
//
// # Polling
//
// Upload processing and generation jobs are observed by polling. A PollPolicy
// with zero MaxAttempts and zero Timeout polls until the backend reports a
// terminal state; cancelling the context stops polling but does not cancel
// the remote job.
package mediaio
