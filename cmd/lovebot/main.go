package main

import (
	"github.com/lovepool/lovebot/bot/cmd"
	basecmd "github.com/lovepool/lovebot/cmd"
)

func main() {
	basecmd.Run(&cmd.BotCmd{}, "lovebot", "Daemon that finds unloved identities and shares the love")
}
