package shell

import (
	"fmt"
	"io"
	"os"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"golang.org/x/term"

	defaults "github.com/xtxerr/tickseries/config"
)

// channelArgs lists commands whose first argument is a channel name.
var channelArgs = map[string]bool{
	"set":     true,
	"get":     true,
	"range":   true,
	"values":  true,
	"history": true,
	"stats":   true,
}

// suggest returns completions for the text before the cursor.
func (sh *Shell) suggest(before string) []prompt.Suggest {
	fields := strings.Fields(before)
	trailing := strings.HasSuffix(before, " ")

	// completing the command word
	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		word := ""
		if len(fields) == 1 {
			word = fields[0]
		}
		s := make([]prompt.Suggest, 0, len(commands)+1)
		for _, name := range commandNames() {
			s = append(s, prompt.Suggest{Text: name, Description: commands[name].help})
		}
		s = append(s, prompt.Suggest{Text: "exit", Description: "leave the shell"})
		return prompt.FilterHasPrefix(s, word, true)
	}

	if !channelArgs[fields[0]] {
		return nil
	}
	// completing the channel argument
	if (len(fields) == 1 && trailing) || (len(fields) == 2 && !trailing) {
		word := ""
		if len(fields) == 2 {
			word = fields[1]
		}
		names := sh.store.Names()
		s := make([]prompt.Suggest, len(names))
		for i, name := range names {
			s[i] = prompt.Suggest{Text: name}
		}
		return prompt.FilterHasPrefix(s, word, false)
	}
	return nil
}

// Complete is the go-prompt completer.
func (sh *Shell) Complete(d prompt.Document) []prompt.Suggest {
	return sh.suggest(d.TextBeforeCursor())
}

// RunInteractive runs a prompt session on the terminal.
// When stdin is not a terminal it reads commands from stdin instead.
func (sh *Shell) RunInteractive(out io.Writer) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return sh.Run(os.Stdin, out)
	}

	fmt.Fprintf(out, "%d channels, window %d. Type help for commands.\n",
		len(sh.store.Names()), sh.store.Capacity())

	p := prompt.New(
		func(line string) {
			if IsExit(line) {
				return
			}
			sh.write(out, line)
		},
		sh.Complete,
		prompt.OptionPrefix(defaults.DefaultShellPrefix),
		prompt.OptionTitle("seriesctl"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && IsExit(in)
		}),
	)
	p.Run()
	return nil
}
