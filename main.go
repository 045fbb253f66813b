package main

import "github.com/abodks10-ai/Pred-Guard/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
