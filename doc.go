/*
Package facetrack is a real-time single face tracker. It follows one face over a
sequence of video frames, combining an expensive face detector with a cheap
template matching relocalizer.

A face found by the detector over the whole frame has to keep its position for a
dwell time before it gets confirmed. Afterwards only the region around the last
known location is searched. When this search fails, template matching substitutes
the detector until it succeeds again or the fallback timeout expires, in which case
the tracker gives up and scans the whole frame again.

The package provides a command line interface which replays an image sequence
through the tracker. To check the supported commands type:

	$ facetrack --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"log"

		"github.com/esimov/facetrack"
	)

	func main() {
		det, err := facetrack.LoadPigoDetector("cascade/facefinder", facetrack.DefaultPigoConfig())
		if err != nil {
			log.Fatal(err)
		}
		tracker, err := facetrack.NewTracker(det, facetrack.DefaultConfig())
		if err != nil {
			log.Fatal(err)
		}

		for frame := range frames {
			pos, err := tracker.ProcessFrame(frame)
			if err != nil {
				log.Fatal(err)
			}
			if pos != facetrack.NotFound {
				fmt.Printf("face at %v\n", tracker.Face())
			}
		}
	}
*/
package facetrack
