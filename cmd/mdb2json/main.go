// Command mdb2json converts Microsoft Access database files to JSON.
package main

import "github.com/dbsmedya/mdb2json/cmd/mdb2json/cmd"

func main() {
	cmd.Execute()
}
