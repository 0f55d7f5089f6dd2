package fx

import (
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/user"
	"go.uber.org/fx"
)

var Module = fx.Options(
	post.Module,
	user.Module,
)
