// Command quickgerman runs the German/English translation overlay daemon
// and the tools that control it.
package main

func main() {
	Execute()
}
