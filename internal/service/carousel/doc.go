// Package carousel implements the content orchestration pipeline: it turns a
// carousel request into generated text and images for every element.
//
// A pass composes one prompt for the whole carousel, makes a single text
// generation call, extracts each element's value from the response by id, and
// renders every image element from its extracted description. Image calls run
// concurrently up to a configured bound. Any upstream failure fails the whole
// pass; partial results are never returned.
package carousel
