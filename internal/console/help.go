package console

const helpText = `HELP
  help                              display this message
  print instructions                print the instruction list
  print layers                      print the layers the list defines
  history                           print this session's journaled edits
  clear                             delete every instruction
  save NAME                         write the list to NAME.inli
  load NAME                         replace the list with NAME.inli
  push INSTRUCTION                  add an instruction at the end
  push INDEX INSTRUCTION            insert an instruction at INDEX
  edit INDEX INSTRUCTION            replace instruction INDEX
  delete INDEX                      delete instruction INDEX
  display (vive|monitor) (true|false)
                                    enable or disable an output
  exit                              exit the program

INSTRUCTIONS
  layer NAME camera                 grab the latest camera frame
  layer NAME image FILE             load FILE from the image catalog
  process NAME resize dimensions W H
  process NAME resize scale F       resize a layer
  process NAME rotate DEGREES       rotate a layer about its centre
  process NAME alpha flat V         set a flat alpha, 0 to 1
  process NAME alpha circular IN OUT
  process NAME alpha circular inverted IN OUT
                                    radial alpha, transparent (or opaque
                                    when inverted) inside IN
  process NAME text TEXT...         print text on a layer
  process NAME overlay OTHER        overlay OTHER centred on NAME
  process NAME place OTHER X Y      overlay OTHER with its corner at X Y
  draw NAME                         draw a layer to the enabled outputs
`
