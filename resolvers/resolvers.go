// Package resolvers wires the built-in platform resolvers into a registry.
// Importing it registers all of them with cobalt.DefaultResolverRegistry.
package resolvers

import (
	"github.com/maxugly/cobalt"
	"github.com/maxugly/cobalt/generic"
	"github.com/maxugly/cobalt/internal/cookie"
	"github.com/maxugly/cobalt/internal/instagram"
	"github.com/maxugly/cobalt/internal/streamproxy"
	"github.com/maxugly/cobalt/internal/youtube"
)

// Options are the collaborators shared by every resolver; zero values select
// each resolver's defaults.
type Options struct {
	Cookies cookie.Store
	Streams streamproxy.Factory
	Config  *cobalt.Config
}

// Register adds all built-in resolvers to the registry.
func Register(reg *cobalt.ResolverRegistry, opts Options) error {
	if opts.Config == nil {
		opts.Config = cobalt.NewConfig()
	}
	err := reg.Add(instagram.New(instagram.Options{
		Cookies:   opts.Cookies,
		Streams:   opts.Streams,
		UserAgent: opts.Config.GenericUserAgent,
	}).Resolver())
	if err != nil {
		return err
	}
	return reg.Add(youtube.New(youtube.Options{Config: opts.Config}).Resolver())
}

func init() {
	generic.Unwrap_(Register(&cobalt.DefaultResolverRegistry, Options{}))
}
