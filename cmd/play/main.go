package main

// makefile runner
func main() {
	bindVar()
	executePlay()
}
