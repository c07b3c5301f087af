/*
Copyright © 2026 JAKVBS
*/
package main

import "github.com/jakvbs/pgeval/cmd"

func main() {
	cmd.Execute()
}
