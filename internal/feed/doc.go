// Package feed turns a converted playlist into an RSS 2.0 document with the
// iTunes podcast extensions that podcast apps expect.
//
// NewPodcastInfo and NewEpisode derive feed metadata from source metadata and
// uploaded objects; Build renders the XML. Nothing here touches the network.
package feed
