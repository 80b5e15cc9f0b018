package cobalt

// A Request is the single entry-point input. Exactly which identifier fields
// are set decides the resolver: PostID routes to the social post resolver,
// Username+StoryID to the story resolver, ID to the streaming resolver.
type Request struct {
	PostID   string
	StoryID  string
	Username string
	ID       string

	// Streaming resolver options.
	Quality      string
	Format       string
	IsAudioOnly  bool
	IsAudioMuted bool
	DubLang      string
}
