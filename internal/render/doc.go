// Package render runs the render pipeline off the caller's goroutine and
// publishes previews.
//
// A Worker owns one background goroutine. Callers hand it a Request and
// return immediately; the worker keeps only the newest request, renders it
// with imaging.Render, writes the result through a Publisher and then calls
// the request's Sink. Renders never overlap.
//
// # Usage
//
//	pub, err := render.NewArtifactPublisher(tempDir, "png")
//	if err != nil {
//	    return err
//	}
//	w := render.NewWorker(pub)
//	defer w.Close()
//
//	w.Request(render.Request{
//	    Source: buf,
//	    Params: params,
//	    Sink: func(r render.Result) {
//	        // runs on the worker goroutine
//	    },
//	})
package render
