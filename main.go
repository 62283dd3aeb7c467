package main

import "github.com/codeguardian/codeguardian/cmd/codeguardian"

func main() { codeguardian.Execute() }
